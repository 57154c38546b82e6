package tags

import (
	"errors"
	"os"

	"github.com/dhowden/tag"
)

var errNoVorbisComment = errors.New("flac: no vorbis comment block")

// fallbacks read a file directly when dhowden/tag rejects it.
var fallbacks = map[Format]func(path string) (*Tag, error){
	FormatMP3:  readID3,
	FormatFLAC: readVorbis,
}

// Read returns the tag metadata of a music file, without stream properties.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if fallback, ok := fallbacks[FormatOf(path)]; ok {
			return fallback(path)
		}
		return nil, err
	}
	return metadataFields(m).tag(path), nil
}

// ReadWithAudio returns tag metadata plus stream properties. Files without
// readable tags still succeed, titled after the file name.
func ReadWithAudio(path string) (*FileInfo, error) {
	audio, err := ReadAudioInfo(path)
	if err != nil {
		return nil, err
	}

	t, err := Read(path)
	if err != nil {
		t = fields{}.tag(path)
	}
	return &FileInfo{Tag: *t, AudioInfo: *audio}, nil
}

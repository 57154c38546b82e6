package keymap

// Binding ties keys to an action, with a description for the help line.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// Default is the built-in key map.
var Default = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},
	{ActionHelp, []string{"?"}, "Toggle help"},

	{ActionPlayPause, []string{" "}, "Play/pause"},
	{ActionStop, []string{"x"}, "Stop"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s"},
	{ActionCycleRepeat, []string{"r"}, "Cycle repeat"},
	{ActionToggleShuffle, []string{"s"}, "Toggle shuffle"},
	{ActionToggleFavorite, []string{"f"}, "Toggle favorite"},

	{ActionMoveUp, []string{"k", "up"}, "Move up"},
	{ActionMoveDown, []string{"j", "down"}, "Move down"},
	{ActionJumpStart, []string{"g", "home"}, "First song"},
	{ActionJumpEnd, []string{"G", "end"}, "Last song"},
	{ActionPageUp, []string{"ctrl+u"}, "Half page up"},
	{ActionPageDown, []string{"ctrl+d"}, "Half page down"},
	{ActionSelect, []string{"enter"}, "Play from here"},
	{ActionJumpToNow, []string{"."}, "Go to playing song"},
	{ActionFilter, []string{"/"}, "Filter songs"},
}

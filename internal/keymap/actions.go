// Package keymap maps key presses to player actions.
package keymap

// Action is a user-triggerable action.
type Action string

const (
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback
	ActionPlayPause      Action = "play_pause"
	ActionStop           Action = "stop"
	ActionNextTrack      Action = "next_track"
	ActionPrevTrack      Action = "prev_track"
	ActionSeekForward    Action = "seek_forward"
	ActionSeekBack       Action = "seek_back"
	ActionCycleRepeat    Action = "cycle_repeat"
	ActionToggleShuffle  Action = "toggle_shuffle"
	ActionToggleFavorite Action = "toggle_favorite"

	// Song list
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionPageUp    Action = "page_up"
	ActionPageDown  Action = "page_down"
	ActionSelect    Action = "select"
	ActionJumpToNow Action = "jump_to_playing"
	ActionFilter    Action = "filter"
)

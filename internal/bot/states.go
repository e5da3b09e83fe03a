package bot

import "chess-trainer-bot/internal/telegram/state"

// Conversation states. Menu states wait for a recognized label; the
// add/broadcast states capture free-form text.
const (
	StateMainMenu      state.State = "main_menu"
	StateStudentsMenu  state.State = "students_menu"
	StateAddStudent    state.State = "add_student"
	StateScheduleMenu  state.State = "schedule_menu"
	StateAddSchedule   state.State = "add_schedule"
	StateHomeworkMenu  state.State = "homework_menu"
	StateAddHomework   state.State = "add_homework"
	StateNewsMenu      state.State = "news_menu"
	StateAddNews       state.State = "add_news"
	StateMaterialsMenu state.State = "materials_menu"
	StateAddMaterial   state.State = "add_material"
	StateChatMenu      state.State = "chat_menu"
	StateBroadcast     state.State = "broadcast_msg"
)

package bot

// Command names.
const (
	CmdStart      = "start"
	CmdHelp       = "help"
	CmdShowThumb  = "show_thumb"
	CmdDelThumb   = "del_thumb"
	CmdSendRemote = "send_remote"
)

// Route names used in logs and metrics.
const (
	RouteStart      = "start"
	RouteShowThumb  = "show_thumb"
	RouteDelThumb   = "del_thumb"
	RouteSendRemote = "send_remote"
	RoutePhoto      = "photo"
	RouteVideo      = "video"
)

// Log field names.
const (
	LogFieldUserID   = "user_id"
	LogFieldRoute    = "route"
	logFieldFileID   = "file_id"
	logFieldPath     = "path"
	logFieldMimeType = "mime_type"
)

// Video source labels for metrics.
const (
	sourceUpload = "upload"
	sourceRemote = "remote"
)

// Chat action sent while a video is being re-uploaded.
const ChatActionUploadVideo = "upload_video"

const (
	videoMimePrefix  = "video/"
	defaultVideoExt  = ".mp4"
	thumbDownloadExt = ".download"
)

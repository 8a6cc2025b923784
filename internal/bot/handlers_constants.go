package bot

// User-facing replies.
const (
	MsgThumbCaption     = "\U0001F4F8 Current Thumbnail"
	MsgNoThumbSet       = "❌ No thumbnail set. Send a photo to set one."
	MsgThumbDeleted     = "✅ Thumbnail deleted."
	MsgThumbSaved       = "✅ Thumbnail saved!"
	MsgVideoCaption     = "\U0001F3AC Video with your custom thumbnail"
	MsgNoThumbForVideo  = "❌ No thumbnail found. Please send a photo first."
	MsgSendRemoteUsage  = "Usage: <code>/send_remote &lt;video_url&gt; [thumb_url]</code>"
	MsgSendRemoteBadURL = "❌ Only http and https links are supported."
)

package bot

// helpMessage returns the welcome text sent for /start and /help.
func helpMessage() string {
	return "<b>\U0001F44B Welcome!</b>\n\n" +
		"This bot lets you add custom thumbnails to Telegram videos.\n\n" +
		"<b>\U0001F4CC How to use:</b>\n" +
		"1. Send a photo – This becomes your thumbnail\n" +
		"2. Send a video – The bot will send it back with the thumbnail\n\n" +
		"<b>\U0001F527 Commands:</b>\n" +
		"<code>/show_thumb</code> – View current thumbnail\n" +
		"<code>/del_thumb</code> – Delete saved thumbnail\n" +
		"<code>/send_remote &lt;video_url&gt; [thumb_url]</code> – Send a video from a link with a thumbnail"
}

package bot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/platform/observability"
)

func (r *Router) handleHelp(ctx context.Context, msg InboundMessage) error {
	return r.deps.Messenger.SendText(ctx, msg.ChatID, helpMessage())
}

func (r *Router) handleShowThumb(ctx context.Context, msg InboundMessage) error {
	path, err := r.storedThumb(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if path == "" {
		return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgNoThumbSet)
	}

	return r.deps.Messenger.SendPhoto(ctx, msg.ChatID, path, MsgThumbCaption)
}

// storedThumb returns "" when the user has no usable thumbnail.
func (r *Router) storedThumb(ctx context.Context, userID int64) (string, error) {
	path, err := r.deps.Store.Lookup(ctx, userID)
	if apperrors.Is(err, apperrors.ErrMediaUnavailable) {
		r.deps.Logger.Debug().Err(err).Int64(LogFieldUserID, userID).Msg("no usable thumbnail")

		return "", nil
	}

	return path, err
}

func (r *Router) handleDeleteThumb(ctx context.Context, msg InboundMessage) error {
	if err := r.deps.Store.Delete(ctx, msg.UserID); err != nil {
		return err
	}

	return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgThumbDeleted)
}

// handlePhoto stores the largest photo size as the user's thumbnail.
// The download lands next to the final path and is renamed into place, so a
// failed download never clobbers the previous thumbnail.
func (r *Router) handlePhoto(ctx context.Context, msg InboundMessage) error {
	path := r.deps.Store.Path(msg.UserID)
	partial := path + thumbDownloadExt

	defer removeIfExists(partial)

	if err := r.deps.Messenger.Download(ctx, msg.Photo.FileID, partial); err != nil {
		return err
	}

	r.normalize(partial, msg.UserID)

	if err := os.Rename(partial, path); err != nil {
		return fmt.Errorf("move thumbnail into place: %w", err)
	}

	if err := r.deps.Store.Save(ctx, msg.UserID, path); err != nil {
		return err
	}

	observability.ThumbnailsSaved.Inc()
	r.deps.Logger.Info().Int64(LogFieldUserID, msg.UserID).Str(logFieldPath, path).Msg("thumbnail saved")

	return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgThumbSaved)
}

// handleVideo re-uploads a video or video document with the stored thumbnail.
func (r *Router) handleVideo(ctx context.Context, msg InboundMessage) error {
	video := msg.VideoMedia()

	thumb, err := r.storedThumb(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if thumb == "" {
		return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgNoThumbForVideo)
	}

	if err := r.deps.Messenger.SendChatAction(ctx, msg.ChatID, ChatActionUploadVideo); err != nil {
		r.deps.Logger.Warn().Err(err).Int64(LogFieldUserID, msg.UserID).Msg("failed to send chat action")
	}

	tmp := r.deps.Temp.NewPath(videoExt(video.MimeType))
	defer r.deps.Temp.Remove(tmp)

	r.deps.Logger.Debug().
		Int64(LogFieldUserID, msg.UserID).
		Str(logFieldFileID, video.FileID).
		Str(logFieldMimeType, video.MimeType).
		Msg("downloading video")

	if err := r.deps.Messenger.Download(ctx, video.FileID, tmp); err != nil {
		return err
	}

	err = r.deps.Messenger.SendVideo(ctx, msg.ChatID, VideoUpload{
		Source:            tmp,
		ThumbPath:         thumb,
		Caption:           MsgVideoCaption,
		SupportsStreaming: true,
		Width:             video.Width,
		Height:            video.Height,
		Duration:          video.Duration,
	})
	if err != nil {
		return err
	}

	observability.VideosSent.WithLabelValues(sourceUpload).Inc()

	return nil
}

// handleSendRemote sends a video by URL. The thumbnail comes from thumb_url
// when given, otherwise from the user's stored thumbnail.
func (r *Router) handleSendRemote(ctx context.Context, msg InboundMessage) error {
	args := strings.Fields(msg.Args)
	if len(args) == 0 {
		return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgSendRemoteUsage)
	}

	for _, arg := range args[:min(len(args), 2)] {
		if !isHTTPURL(arg) {
			return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgSendRemoteBadURL)
		}
	}

	videoURL := args[0]

	var thumb string

	if len(args) > 1 {
		tmp := r.deps.Temp.NewPath(".jpg")
		defer r.deps.Temp.Remove(tmp)

		if err := r.deps.Fetcher.Fetch(ctx, args[1], tmp); err != nil {
			return fmt.Errorf("%w: fetch remote thumbnail: %w", apperrors.ErrDownloadFailed, err)
		}

		r.normalize(tmp, msg.UserID)
		thumb = tmp
	} else {
		path, err := r.storedThumb(ctx, msg.UserID)
		if err != nil {
			return err
		}

		if path == "" {
			return r.deps.Messenger.SendText(ctx, msg.ChatID, MsgNoThumbForVideo)
		}

		thumb = path
	}

	if err := r.deps.Messenger.SendChatAction(ctx, msg.ChatID, ChatActionUploadVideo); err != nil {
		r.deps.Logger.Warn().Err(err).Int64(LogFieldUserID, msg.UserID).Msg("failed to send chat action")
	}

	err := r.deps.Messenger.SendVideo(ctx, msg.ChatID, VideoUpload{
		Source:            videoURL,
		IsURL:             true,
		ThumbPath:         thumb,
		Caption:           MsgVideoCaption,
		SupportsStreaming: true,
	})
	if err != nil {
		return err
	}

	observability.VideosSent.WithLabelValues(sourceRemote).Inc()

	return nil
}

// normalize logs and swallows processor failures; the raw image is kept.
func (r *Router) normalize(path string, userID int64) {
	if err := r.deps.Processor.Normalize(path); err != nil {
		observability.NormalizeFailures.Inc()
		r.deps.Logger.Warn().Err(err).Int64(LogFieldUserID, userID).Str(logFieldPath, path).Msg("thumbnail normalization failed, keeping original")
	}
}

var videoExtensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/webm":       ".webm",
	"video/x-matroska": ".mkv",
	"video/mpeg":       ".mpeg",
	"video/x-msvideo":  ".avi",
}

func videoExt(mimeType string) string {
	if ext, ok := videoExtensions[strings.ToLower(mimeType)]; ok {
		return ext
	}

	return defaultVideoExt
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}

func removeIfExists(path string) {
	//nolint:errcheck // best-effort cleanup, missing file is expected
	_ = os.Remove(path)
}

package bot

import (
	"context"

	"github.com/rs/zerolog"
)

// handlerFunc handles one classified message.
type handlerFunc func(ctx context.Context, msg InboundMessage) error

// route pairs a message classification with its handler.
type route struct {
	name    string
	matches func(msg InboundMessage) bool
	handle  handlerFunc
}

// Deps are the collaborators injected into the router.
type Deps struct {
	Messenger Messenger
	Store     ThumbnailStore
	Processor Normalizer
	Fetcher   RemoteFetcher
	Temp      TempFiles
	Logger    *zerolog.Logger
}

// Router dispatches a message to the first route whose predicate matches.
type Router struct {
	deps   Deps
	routes []route
}

// NewRouter builds the dispatch table: commands, then photos, then videos.
func NewRouter(deps Deps) *Router {
	r := &Router{deps: deps}

	r.routes = []route{
		{name: RouteStart, matches: isCommand(CmdStart, CmdHelp), handle: r.handleHelp},
		{name: RouteShowThumb, matches: isCommand(CmdShowThumb), handle: r.handleShowThumb},
		{name: RouteDelThumb, matches: isCommand(CmdDelThumb), handle: r.handleDeleteThumb},
		{name: RouteSendRemote, matches: isCommand(CmdSendRemote), handle: r.handleSendRemote},
		{name: RoutePhoto, matches: hasPhoto, handle: r.handlePhoto},
		{name: RouteVideo, matches: hasVideo, handle: r.handleVideo},
	}

	return r
}

// Match returns the name of the route msg would take, or "" when it is ignored.
func (r *Router) Match(msg InboundMessage) string {
	if rt := r.find(msg); rt != nil {
		return rt.name
	}

	return ""
}

// Dispatch runs the matching handler. It returns the route name, or "" when
// nothing matched and the message was ignored.
func (r *Router) Dispatch(ctx context.Context, msg InboundMessage) (string, error) {
	rt := r.find(msg)
	if rt == nil {
		return "", nil
	}

	return rt.name, rt.handle(ctx, msg)
}

func (r *Router) find(msg InboundMessage) *route {
	for i := range r.routes {
		if r.routes[i].matches(msg) {
			return &r.routes[i]
		}
	}

	return nil
}

func isCommand(names ...string) func(InboundMessage) bool {
	return func(msg InboundMessage) bool {
		for _, name := range names {
			if msg.Command == name {
				return true
			}
		}

		return false
	}
}

func hasPhoto(msg InboundMessage) bool {
	return !msg.IsCommand() && msg.Photo != nil
}

func hasVideo(msg InboundMessage) bool {
	return !msg.IsCommand() && msg.VideoMedia() != nil
}

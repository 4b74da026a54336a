// internal/game/router.go
package game

import "sync"

// Comment is one inbound chat event from the live-chat ingestion layer.
// UserID is an opaque identity; Nickname may change between comments.
type Comment struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Text     string `json:"comment"`
}

// Instance is the capability surface shared by every game variant: a sink
// for chat text and a leaderboard snapshot for overlay bootstrap. The closed
// variant set is the typing-challenge Engine and the FusionGame collector.
type Instance interface {
	Name() string
	HandleComment(c Comment)
	LeaderboardData() []Standing
}

// CommentRouter fans every inbound chat comment out to each live game
// instance. It keeps no state beyond the instance set; each instance decides
// for itself whether a comment is interesting.
type CommentRouter struct {
	mu        sync.RWMutex
	instances []Instance
}

func NewCommentRouter(instances ...Instance) *CommentRouter {
	return &CommentRouter{instances: instances}
}

// Register adds an instance to the dispatch set.
func (r *CommentRouter) Register(inst Instance) {
	r.mu.Lock()
	r.instances = append(r.instances, inst)
	r.mu.Unlock()
}

// Route forwards c to every registered instance.
func (r *CommentRouter) Route(c Comment) {
	r.mu.RLock()
	instances := append([]Instance(nil), r.instances...)
	r.mu.RUnlock()
	for _, inst := range instances {
		inst.HandleComment(c)
	}
}

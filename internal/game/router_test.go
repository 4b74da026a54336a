// internal/game/router_test.go
package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInstance captures routed comments for assertions.
type recordingInstance struct {
	name string
	mu   sync.Mutex
	got  []Comment
}

func (ri *recordingInstance) Name() string { return ri.name }

func (ri *recordingInstance) HandleComment(c Comment) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.got = append(ri.got, c)
}

func (ri *recordingInstance) LeaderboardData() []Standing { return nil }

func (ri *recordingInstance) comments() []Comment {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return append([]Comment(nil), ri.got...)
}

func TestRouterFansOutToAllInstances(t *testing.T) {
	a := &recordingInstance{name: "a"}
	b := &recordingInstance{name: "b"}
	r := NewCommentRouter(a, b)

	c := Comment{UserID: "u1", Nickname: "Alice", Text: "apple"}
	r.Route(c)

	require.Equal(t, []Comment{c}, a.comments())
	require.Equal(t, []Comment{c}, b.comments())
}

func TestRouterRegisterAfterConstruction(t *testing.T) {
	r := NewCommentRouter()
	late := &recordingInstance{name: "late"}

	r.Route(Comment{UserID: "u1", Text: "before"})
	r.Register(late)
	r.Route(Comment{UserID: "u1", Text: "after"})

	require.Len(t, late.comments(), 1)
	assert.Equal(t, "after", late.comments()[0].Text)
}

func TestRouterConcurrentRoutes(t *testing.T) {
	ri := &recordingInstance{name: "a"}
	r := NewCommentRouter(ri)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Route(Comment{UserID: "u1", Text: "x"})
		}()
	}
	wg.Wait()

	assert.Len(t, ri.comments(), 32)
}

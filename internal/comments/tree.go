// Package comments arranges a post's flat comment list into one-level threads.
package comments

import (
	"sort"

	"github.com/inkwell/internal/db"
)

// Thread is a top-level comment with its replies, oldest reply first.
type Thread struct {
	Comment db.Comment   `json:"comment"`
	Replies []db.Comment `json:"replies"`
}

// Placement says where a comment appears in the tree.
type Placement struct {
	Root   bool
	RootID uint // top-level ancestor when Root is false
}

// Classify resolves c to its top-level ancestor. A comment whose parent is
// missing from byID is promoted to a root; cycles are broken at c.
func Classify(c db.Comment, byID map[uint]db.Comment) Placement {
	if c.ParentID == nil {
		return Placement{Root: true}
	}

	seen := map[uint]bool{c.ID: true}
	current := c
	for current.ParentID != nil {
		parent, ok := byID[*current.ParentID]
		if !ok || parent.PostID != c.PostID || seen[parent.ID] {
			if current.ID == c.ID {
				return Placement{Root: true}
			}
			return Placement{RootID: current.ID}
		}
		seen[parent.ID] = true
		current = parent
	}
	return Placement{RootID: current.ID}
}

// BuildTree groups flat into threads. Roots are ordered newest first, replies
// oldest first; deeper replies are flattened under their top-level ancestor.
func BuildTree(flat []db.Comment) []Thread {
	byID := make(map[uint]db.Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	threads := make([]Thread, 0, len(flat))
	index := make(map[uint]int, len(flat))
	var replies []db.Comment
	rootOf := make(map[uint]uint)

	for _, c := range flat {
		placement := Classify(c, byID)
		if placement.Root {
			index[c.ID] = len(threads)
			threads = append(threads, Thread{Comment: c, Replies: []db.Comment{}})
			continue
		}
		replies = append(replies, c)
		rootOf[c.ID] = placement.RootID
	}

	for _, reply := range replies {
		pos, ok := index[rootOf[reply.ID]]
		if !ok {
			// 祖先链在环上时没有根，直接提升为顶层评论。
			index[reply.ID] = len(threads)
			threads = append(threads, Thread{Comment: reply, Replies: []db.Comment{}})
			continue
		}
		threads[pos].Replies = append(threads[pos].Replies, reply)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return newer(threads[i].Comment, threads[j].Comment)
	})
	for i := range threads {
		sort.SliceStable(threads[i].Replies, func(a, b int) bool {
			return older(threads[i].Replies[a], threads[i].Replies[b])
		})
	}
	return threads
}

func older(a, b db.Comment) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func newer(a, b db.Comment) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

package content

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTagNotFound     = errors.New("tag not found")
)

// Post is a message published into a group. Group and author are fixed at
// creation and never reassigned.
type Post struct {
	ID        string
	GroupID   string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	Tags      []*Tag
}

// Comment is a reply to a post; its group is the post's group.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	Tags      []*Tag
}

// TargetKind discriminates a tag's target.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// TargetRef points at exactly one post or one comment. The zero value is
// invalid; construction goes through PostRef or CommentRef, so a tag can
// never reference both.
type TargetRef struct {
	kind TargetKind
	id   string
}

// PostRef returns a target pointing at a post.
func PostRef(postID string) TargetRef {
	return TargetRef{kind: TargetPost, id: postID}
}

// CommentRef returns a target pointing at a comment.
func CommentRef(commentID string) TargetRef {
	return TargetRef{kind: TargetComment, id: commentID}
}

// Kind returns the target discriminator.
func (r TargetRef) Kind() TargetKind {
	return r.kind
}

// PostID returns the post ID when the target is a post.
func (r TargetRef) PostID() (string, bool) {
	if r.kind != TargetPost {
		return "", false
	}
	return r.id, true
}

// CommentID returns the comment ID when the target is a comment.
func (r TargetRef) CommentID() (string, bool) {
	if r.kind != TargetComment {
		return "", false
	}
	return r.id, true
}

// Tag links a user to exactly one post or comment.
type Tag struct {
	ID        string
	UserID    string
	Target    TargetRef
	CreatedAt time.Time
}

// PostRepository defines the interface for post persistence
type PostRepository interface {
	// Create inserts the post and its tag rows in one transaction
	Create(ctx context.Context, post *Post, tagUserIDs []string) error

	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, id string) (*Post, error)

	// ListByGroup retrieves a group's posts, newest first, with tags
	ListByGroup(ctx context.Context, groupID string) ([]*Post, error)

	// Delete removes a post and its dependent comments and tags
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	// Create inserts the comment and its tag rows in one transaction
	Create(ctx context.Context, comment *Comment, tagUserIDs []string) error

	// GetByID retrieves a comment by ID
	GetByID(ctx context.Context, id string) (*Comment, error)

	// ListByPost retrieves a post's comments, oldest first, with tags
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)

	// Delete removes a comment and its dependent tags
	Delete(ctx context.Context, id string) error
}

// TagRepository defines the interface for tag persistence
type TagRepository interface {
	// Create inserts a tag
	Create(ctx context.Context, tag *Tag) error

	// GetByID retrieves a tag by ID
	GetByID(ctx context.Context, id string) (*Tag, error)

	// Delete removes a tag
	Delete(ctx context.Context, id string) error
}

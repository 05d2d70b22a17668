package draft

import (
	"context"
	"fmt"
	"time"
)

// Store is the data store collaborator of the authoring core: the post
// collection and the post-tag association collection.
type Store interface {
	// FindPost loads a post owned by authorID, or returns ErrPostNotFound.
	FindPost(ctx context.Context, id, authorID uint) (*Snapshot, error)
	// InsertPost creates a post and returns its generated id.
	InsertPost(ctx context.Context, rec Record) (uint, error)
	// UpdatePost overwrites the fields of rec on post id.
	UpdatePost(ctx context.Context, id uint, rec Record) error
	// DeletePostTags removes every tag association of a post.
	DeletePostTags(ctx context.Context, postID uint) error
	// InsertPostTags adds one association per tag id.
	InsertPostTags(ctx context.Context, postID uint, tagIDs []uint) error
}

// TagReplacer is implemented by stores that can swap a post's tag set atomically.
type TagReplacer interface {
	ReplacePostTags(ctx context.Context, postID uint, tagIDs []uint) error
}

// Snapshot is a persisted post loaded into a new edit session.
type Snapshot struct {
	Draft       Draft
	PublishedAt *time.Time
}

// persist runs one save: INSERT when id is zero, UPDATE otherwise, then
// relinks the tag set. The returned id is non-zero whenever the post row
// exists, including when the tag step failed after a successful insert.
func persist(ctx context.Context, st Store, id uint, rec Record, tagIDs []uint) (uint, error) {
	if id == 0 {
		newID, err := st.InsertPost(ctx, rec)
		if err != nil {
			return 0, fmt.Errorf("insert post: %w", err)
		}
		id = newID
	} else if err := st.UpdatePost(ctx, id, rec); err != nil {
		return id, fmt.Errorf("update post %d: %w", id, err)
	}

	if err := replaceTags(ctx, st, id, tagIDs); err != nil {
		return id, err
	}
	return id, nil
}

func replaceTags(ctx context.Context, st Store, postID uint, tagIDs []uint) error {
	if replacer, ok := st.(TagReplacer); ok {
		if err := replacer.ReplacePostTags(ctx, postID, tagIDs); err != nil {
			return fmt.Errorf("replace tags of post %d: %w", postID, err)
		}
		return nil
	}

	if err := st.DeletePostTags(ctx, postID); err != nil {
		return fmt.Errorf("delete tags of post %d: %w", postID, err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	if err := st.InsertPostTags(ctx, postID, tagIDs); err != nil {
		return fmt.Errorf("insert tags of post %d: %w", postID, err)
	}
	return nil
}

package model

// AnonymousUsername is used whenever a thread, comment or reply is posted without a name.
const AnonymousUsername = "Anonymous"

// Thread is a forum post. Likes/Liked are a single global toggle, not per-user state.
type Thread struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Username    string        `json:"username"`
	Image       *UploadRecord `json:"image"`
	Comments    []Comment     `json:"comments"`
	Likes       int           `json:"likes"`
	Liked       bool          `json:"liked"`
	CreatedAt   string        `json:"created_at"`
}

// Comment is a top-level response to a thread. Replies are addressed by the
// comment's position in Thread.Comments.
type Comment struct {
	Username  string  `json:"username"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	Replies   []Reply `json:"replies"`
}

// Reply is a response to one comment, optionally carrying its own image.
type Reply struct {
	Username  string        `json:"username"`
	Content   string        `json:"content"`
	Image     *UploadRecord `json:"image"`
	CreatedAt string        `json:"created_at"`
}

// LikeState is the result of toggling a thread's like.
type LikeState struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

package models

// ResolvedComment is a comment joined with its author's profile.
type ResolvedComment struct {
	Comment
	Author     Profile `json:"author"`
	AuthorName string  `json:"authorName"`
}

// EngagementView is a post with its likers and comments resolved. It is
// derived on demand and never stored.
type EngagementView struct {
	Post          Post              `json:"post"`
	UsersWhoLiked []Profile         `json:"usersWhoLiked"`
	Comments      []ResolvedComment `json:"comments"`
}

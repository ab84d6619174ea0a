package blog

type ListPostsQuery struct {
	Skip int `query:"skip" json:"skip,omitempty" validate:"min=0"`
	Take int `query:"take" json:"take,omitempty" default:"20" validate:"min=1,max=100"`
}

type CreatePostPayload struct {
	Title string `json:"title" mod:"trim" validate:"required,max=300"`
	Body  string `json:"body" mod:"trim" validate:"required,max=20000"`
}

// ReplacePostPayload is the PUT body; both fields are replaced.
type ReplacePostPayload struct {
	Title string `json:"title" mod:"trim" validate:"required,max=300"`
	Body  string `json:"body" mod:"trim" validate:"required,max=20000"`
}

type UpdatePostPayload struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=300"`
	Body  *string `json:"body,omitempty" validate:"omitempty,max=20000"`
}

type CreateCommentPayload struct {
	Comment string `json:"comment" mod:"trim" validate:"required,max=2000"`
}

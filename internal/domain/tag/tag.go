package tag

import "errors"

var ErrNameTaken = errors.New("tag name already in use")

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=80"`
}

package model

// Record is a user-visible catalog entry. Any authenticated user may act on
// any record; there is no ownership link to User.
type Record struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Img   string `json:"img"`
}

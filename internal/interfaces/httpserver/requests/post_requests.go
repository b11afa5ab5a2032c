package requests

// UploadForm holds the non-file fields of a multipart upload.
type UploadForm struct {
	Caption string `form:"caption"`
}

// PostURI binds the post id path parameter.
type PostURI struct {
	ID string `uri:"id" binding:"required"`
}

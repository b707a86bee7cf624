package remote

type RenderRequest struct {
	Effect    string
	Intensity int
	// Image is PNG encoded.
	Image []byte
}

type RenderResponse struct {
	Image []byte
}

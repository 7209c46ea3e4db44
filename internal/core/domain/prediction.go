package domain

// PredictionMetadata carries the optional form fields that accompany an
// uploaded image. Missing values stay as empty strings and are forwarded as such.
type PredictionMetadata struct {
	Age    string
	Gender string
	Weight string
	Lat    string
	Lon    string
}

// PredictionRequest is a single image upload destined for the prediction service.
type PredictionRequest struct {
	Image     []byte
	ImageName string
	Metadata  PredictionMetadata
}

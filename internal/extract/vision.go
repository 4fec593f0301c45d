package extract

import (
	"context"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionRecognizer implements ImageRecognizer using the Google Cloud Vision API.
// The Vision client multiplexes concurrent calls, so no serialization is needed.
type VisionRecognizer struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionRecognizer creates a recognizer with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS
// JSON in env, falling back to application default credentials.
func NewVisionRecognizer(ctx context.Context) (*VisionRecognizer, error) {
	const op = "NewVisionRecognizer"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapExtractError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapExtractError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapExtractError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionRecognizer{client: client}, nil
}

// NewVisionRecognizerWithClient creates a recognizer with an explicit client (for testing).
func NewVisionRecognizerWithClient(client *vision.ImageAnnotatorClient) *VisionRecognizer {
	return &VisionRecognizer{client: client}
}

// Recognize runs document text detection on the image at path.
func (v *VisionRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	const op = "Recognize"

	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExtractError(op, err, "read image")
	}
	if len(data) > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, "")
	}

	annotation, err := v.client.DetectDocumentText(ctx, &visionpb.Image{Content: data}, nil)
	if err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, err.Error())
	}
	if annotation == nil {
		return "", nil
	}
	return annotation.Text, nil
}

// Close closes the underlying Vision client.
func (v *VisionRecognizer) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

package ports

// Publisher durably replaces a destination file with new content.
//
//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks
type Publisher interface {
	// Publish stages content in a temp file and moves it over destination.
	// Readers of destination observe either the previous or the new content.
	// It returns the digest of the published content.
	Publish(destination string, content []byte) (string, error)
}

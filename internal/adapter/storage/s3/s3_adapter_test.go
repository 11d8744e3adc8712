package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "listings/user-1/abc.jpg", objectKey("listings/user-1", "abc.jpg"))
	assert.Equal(t, "listings/user-1/evil.jpg", objectKey("listings/user-1/", "../../evil.jpg"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/listings-photos/listings/u/a.jpg",
		objectURL("http://localhost:9000", "listings-photos", "listings/u/a.jpg"))
}

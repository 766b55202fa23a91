package file

import "github.com/desertwitch/nativeio/internal/native"

func nativeInvalid() native.Handle {
	return native.Handle{}
}

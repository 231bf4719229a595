package util

import (
	"encoding/json"
	"io"
	"io/ioutil"
)

// FullDecode unmarshals a JSON request body into obj, then drains the
// remainder of the body and closes it so the connection can be reused.
// The error returned is the decode error, not the drain error.
func FullDecode(r io.ReadCloser, obj interface{}) error {
	d := json.NewDecoder(r)
	err := d.Decode(obj)
	// read to EOF and ignore the result
	ioutil.ReadAll(r)
	r.Close()
	return err
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package json

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// NewCodec returns a JSON-RPC 2.0 codec that also accepts method names
// starting with a lowercase letter, such as "launchpad.getBadge".
func NewCodec() rpc.Codec {
	return lowercase{json2.NewCodec()}
}

type lowercase struct {
	*json2.Codec
}

func (lc lowercase) NewRequest(r *http.Request) rpc.CodecRequest {
	return &request{lc.Codec.NewRequest(r).(*json2.CodecRequest)}
}

type request struct {
	*json2.CodecRequest
}

func (r *request) Method() (string, error) {
	method, err := r.CodecRequest.Method()
	if err != nil {
		return method, err
	}
	dot := strings.LastIndexByte(method, '.')
	if dot < 0 || dot+1 >= len(method) {
		return method, nil
	}
	first, size := utf8.DecodeRuneInString(method[dot+1:])
	return method[:dot+1] + string(unicode.ToUpper(first)) + method[dot+1+size:], nil
}

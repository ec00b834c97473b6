// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

// Codec serializes the unsigned vote payload that gets hashed and signed.
var Codec codec.Manager

func init() {
	lc := linearcodec.NewDefault()

	Codec = codec.NewDefaultManager()
	if err := lc.RegisterType(&votePayload{}); err != nil {
		panic(err)
	}
	if err := Codec.RegisterCodec(CodecVersion, lc); err != nil {
		panic(err)
	}
}

// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"bytes"

	"gopkg.in/typ.v4/sync2"
)

// Pool reusable objects to reduce garbage collector
type Pool struct {
	Buffers *sync2.Pool[*bytes.Buffer]
}

func NewPool() *Pool {
	return &Pool{
		Buffers: &sync2.Pool[*bytes.Buffer]{
			New: func() *bytes.Buffer {
				return bytes.NewBuffer(make([]byte, 0, 512))
			},
		},
	}
}

// GetBuffer returns an empty buffer from the pool.
func (p *Pool) GetBuffer() *bytes.Buffer {
	buf := p.Buffers.Get()
	buf.Reset()
	return buf
}

// PutBuffer returns buf to the pool. Oversized buffers are dropped.
func (p *Pool) PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > 64*1024 {
		return
	}
	p.Buffers.Put(buf)
}

package encoding

import (
	"github.com/philippgille/gokv/encoding"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec is the value codec used for structured records kept next to the index.
type Codec encoding.Codec

var (
	MsgPack Codec = &MsgPackEncoding{}

	// JSON is gokv's JSON codec, used for records that leave the process.
	JSON Codec = encoding.JSON
)

type MsgPackEncoding struct{}

func (m *MsgPackEncoding) Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

func (m *MsgPackEncoding) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

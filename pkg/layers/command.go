/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package layers

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

const (
	// CommandLayerNum identifies the layer
	CommandLayerNum = 2047
	// WriteLayerNum identifies the layer
	WriteLayerNum = 2048
)

// CommandLayer is the frame that opens every transaction
type CommandLayer struct {
	layers.BaseLayer
	Read     bool
	Addr     uint16
	ParityOk bool // filled in on decode
}

var (
	CommandLayerType gopacket.LayerType
	WriteLayerType   gopacket.LayerType
)

// The decoders refer back to the layer types, so the types are registered
// here rather than in the var block.
func init() {
	CommandLayerType = gopacket.RegisterLayerType(CommandLayerNum,
		gopacket.LayerTypeMetadata{Name: "CommandLayerType", Decoder: gopacket.DecodeFunc(DecodeCommandLayer)})
	WriteLayerType = gopacket.RegisterLayerType(WriteLayerNum,
		gopacket.LayerTypeMetadata{Name: "WriteLayerType", Decoder: gopacket.DecodeFunc(DecodeWriteLayer)})
}

// LayerType returns the type of the command layer in the layer catalog
func (c *CommandLayer) LayerType() gopacket.LayerType {
	return CommandLayerType
}

// Word returns the command frame with its parity bit set
func (c *CommandLayer) Word() uint16 {
	return CommandWord(c.Read, c.Addr)
}

// Serialize writes the command frame to the first two bytes of buf
func (c *CommandLayer) Serialize(buf []byte) {
	putWord(buf, c.Word())
}

// SerializeTo serializes the command frame and prepends it to the SerializeBuffer
func (c *CommandLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(WordLen)
	if err != nil {
		return err
	}
	c.Serialize(bytes)
	return nil
}

func (c *CommandLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < WordLen {
		df.SetTruncated()
		return ErrShortFrame{Len: len(data)}
	}
	c.BaseLayer = layers.BaseLayer{
		Contents: data[:WordLen],
		Payload:  data[WordLen:],
	}
	word := getWord(data)
	c.Read = word&(1<<reg.RWBit) != 0
	c.Addr = word & reg.AddrMask
	c.ParityOk = IsEvenParity(word)
	return nil
}

// CanDecode returns the set of layer types that this DecodingLayer can decode
func (c *CommandLayer) CanDecode() gopacket.LayerClass {
	return CommandLayerType
}

// NextLayerType returns the frame expected after this one: a write command
// is always followed by its data frame.
func (c *CommandLayer) NextLayerType() gopacket.LayerType {
	if len(c.Payload) < WordLen {
		return gopacket.LayerTypeZero
	}
	if c.Read {
		return CommandLayerType
	}
	return WriteLayerType
}

func (c *CommandLayer) String() string {
	rw := "W"
	if c.Read {
		rw = "R"
	}
	return fmt.Sprintf("CMD %s 0x%04X", rw, c.Addr)
}

func DecodeCommandLayer(data []byte, p gopacket.PacketBuilder) error {
	c := &CommandLayer{}
	err := c.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(c)
	next := c.NextLayerType()
	if next == gopacket.LayerTypeZero {
		return nil
	}
	return p.NextDecoder(next)
}

// WriteLayer is the data frame sent right after a write command
type WriteLayer struct {
	layers.BaseLayer
	Data     uint16
	ParityOk bool
}

// LayerType returns the type of the write data layer in the layer catalog
func (w *WriteLayer) LayerType() gopacket.LayerType {
	return WriteLayerType
}

// Word returns the write data frame with its parity bit set
func (w *WriteLayer) Word() uint16 {
	return WriteWord(w.Data)
}

func (w *WriteLayer) Serialize(buf []byte) {
	putWord(buf, w.Word())
}

// SerializeTo serializes the write data frame and prepends it to the SerializeBuffer
func (w *WriteLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(WordLen)
	if err != nil {
		return err
	}
	w.Serialize(bytes)
	return nil
}

func (w *WriteLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < WordLen {
		df.SetTruncated()
		return ErrShortFrame{Len: len(data)}
	}
	w.BaseLayer = layers.BaseLayer{
		Contents: data[:WordLen],
		Payload:  data[WordLen:],
	}
	word := getWord(data)
	w.Data = word & reg.DataMask
	w.ParityOk = IsEvenParity(word)
	return nil
}

func (w *WriteLayer) CanDecode() gopacket.LayerClass {
	return WriteLayerType
}

func (w *WriteLayer) NextLayerType() gopacket.LayerType {
	if len(w.Payload) < WordLen {
		return gopacket.LayerTypeZero
	}
	return CommandLayerType
}

func (w *WriteLayer) String() string {
	return fmt.Sprintf("DATA 0x%04X", w.Data)
}

func DecodeWriteLayer(data []byte, p gopacket.PacketBuilder) error {
	w := &WriteLayer{}
	err := w.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(w)
	next := w.NextLayerType()
	if next == gopacket.LayerTypeZero {
		return nil
	}
	return p.NextDecoder(next)
}

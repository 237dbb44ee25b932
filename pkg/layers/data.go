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
	// DataLayerNum identifies the layer
	DataLayerNum = 2049
)

// DataLayer is a read data frame clocked out by the sensor.
// Every frame carries the answer to the command of the previous frame.
type DataLayer struct {
	layers.BaseLayer
	Raw       uint16
	ErrorFlag bool
	Data      uint16
	ParityOk  bool
}

var DataLayerType gopacket.LayerType

func init() {
	DataLayerType = gopacket.RegisterLayerType(DataLayerNum,
		gopacket.LayerTypeMetadata{Name: "DataLayerType", Decoder: gopacket.DecodeFunc(DecodeDataLayer)})
}

// LayerType returns the type of the data layer in the layer catalog
func (d *DataLayer) LayerType() gopacket.LayerType {
	return DataLayerType
}

// NewDataLayer decodes a single received word
func NewDataLayer(word uint16) *DataLayer {
	d := &DataLayer{}
	d.decodeWord(word)
	return d
}

func (d *DataLayer) decodeWord(word uint16) {
	d.Raw = word
	d.ErrorFlag = word&(1<<reg.ErrorBit) != 0
	d.Data = word & reg.DataMask
	d.ParityOk = IsEvenParity(word)
}

func (d *DataLayer) Serialize(buf []byte) {
	putWord(buf, ReplyWord(d.Data, d.ErrorFlag))
}

// SerializeTo serializes the data frame and prepends it to the SerializeBuffer
func (d *DataLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(WordLen)
	if err != nil {
		return err
	}
	d.Serialize(bytes)
	return nil
}

func (d *DataLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < WordLen {
		df.SetTruncated()
		return ErrShortFrame{Len: len(data)}
	}
	d.BaseLayer = layers.BaseLayer{
		Contents: data[:WordLen],
		Payload:  data[WordLen:],
	}
	d.decodeWord(getWord(data))
	return nil
}

func (d *DataLayer) CanDecode() gopacket.LayerClass {
	return DataLayerType
}

func (d *DataLayer) NextLayerType() gopacket.LayerType {
	if len(d.Payload) < WordLen {
		return gopacket.LayerTypeZero
	}
	return DataLayerType
}

func (d *DataLayer) String() string {
	flags := ""
	if d.ErrorFlag {
		flags += " EF"
	}
	if !d.ParityOk {
		flags += " PARITY"
	}
	return fmt.Sprintf("REPLY 0x%04X%s", d.Data, flags)
}

func DecodeDataLayer(data []byte, p gopacket.PacketBuilder) error {
	d := &DataLayer{}
	err := d.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(d)
	next := d.NextLayerType()
	if next == gopacket.LayerTypeZero {
		return nil
	}
	return p.NextDecoder(next)
}

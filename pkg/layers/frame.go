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
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-as5047p/pkg/reg"
)

const (
	// WordLen is the size of one SPI frame on the wire (MSB first)
	WordLen = 2

	parityDataMask uint16 = 0x7FFF
)

// ErrShortFrame returned when less than one 16-bit frame is decoded
type ErrShortFrame struct {
	Len int
}

func (e ErrShortFrame) Error() string {
	return fmt.Sprintf("Frame too short: %d bytes, need %d", e.Len, WordLen)
}

// Parity returns the parity bit that makes bits 0..15 of word even.
// Only bits 0..14 of word are considered.
func Parity(word uint16) uint16 {
	return uint16(bits.OnesCount16(word&parityDataMask) & 1)
}

// WithParity replaces bit 15 of word with the even parity bit over bits 0..14
func WithParity(word uint16) uint16 {
	word &= parityDataMask
	return word | Parity(word)<<reg.ParityBit
}

// IsEvenParity checks a received frame including its parity bit
func IsEvenParity(word uint16) bool {
	return bits.OnesCount16(word)%2 == 0
}

// CommandWord builds a command frame: bit 15 parity, bit 14 read/write, bits 13..0 address
func CommandWord(read bool, addr uint16) uint16 {
	word := addr & reg.AddrMask
	if read {
		word |= 1 << reg.RWBit
	}
	return WithParity(word)
}

// WriteWord builds the data frame that follows a write command. Bit 14 is always zero.
func WriteWord(data uint16) uint16 {
	return WithParity(data & reg.DataMask)
}

// ReplyWord builds a read data frame as the sensor sends it
func ReplyWord(data uint16, errorFlag bool) uint16 {
	word := data & reg.DataMask
	if errorFlag {
		word |= 1 << reg.ErrorBit
	}
	return WithParity(word)
}

func putWord(buf []byte, word uint16) {
	binary.BigEndian.PutUint16(buf[0:WordLen], word)
}

func getWord(buf []byte) uint16 {
	return binary.BigEndian.Uint16(buf[0:WordLen])
}

// WordsToBytes lays words out MSB first as they are clocked on the bus
func WordsToBytes(words []uint16) []byte {
	buf := make([]byte, len(words)*WordLen)
	for i, w := range words {
		putWord(buf[i*WordLen:], w)
	}
	return buf
}

// BytesToWords is the reverse of WordsToBytes. A trailing odd byte is dropped.
func BytesToWords(buf []byte) []uint16 {
	words := make([]uint16, 0, len(buf)/WordLen)
	for i := 0; i+WordLen <= len(buf); i += WordLen {
		words = append(words, getWord(buf[i:]))
	}
	return words
}

// SerializeFrames serializes outgoing frames in order and returns them as 16-bit words
func SerializeFrames(frames ...gopacket.SerializableLayer) ([]uint16, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, frames...); err != nil {
		return nil, err
	}
	return BytesToWords(buf.Bytes()), nil
}

// DecodeMOSI decodes a stream of words sent to the sensor
func DecodeMOSI(words []uint16) gopacket.Packet {
	return gopacket.NewPacket(WordsToBytes(words), CommandLayerType, gopacket.Default)
}

// DecodeMISO decodes a stream of words received from the sensor
func DecodeMISO(words []uint16) gopacket.Packet {
	return gopacket.NewPacket(WordsToBytes(words), DataLayerType, gopacket.Default)
}

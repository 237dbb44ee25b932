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

package transport

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-as5047p/pkg/layers"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
)

// TraceTransport decodes every exchange and logs it at debug level
type TraceTransport struct {
	Transport
	Name string
}

var _ Transport = &TraceTransport{}

func NewTraceTransport(t Transport, name string) *TraceTransport {
	return &TraceTransport{Transport: t, Name: name}
}

func (t *TraceTransport) TransferWord(word uint16) (uint16, error) {
	rx, err := t.Transport.TransferWord(word)
	if err != nil {
		log.Debug("%s: tx %04X failed: %s", t.Name, word, err)
		return rx, err
	}
	t.trace([]uint16{word}, []uint16{rx})
	return rx, nil
}

func (t *TraceTransport) TransferWords(words []uint16) ([]uint16, error) {
	rx, err := t.Transport.TransferWords(words)
	if err != nil {
		log.Debug("%s: tx %d frames failed: %s", t.Name, len(words), err)
		return rx, err
	}
	t.trace(words, rx)
	return rx, nil
}

func (t *TraceTransport) trace(tx, rx []uint16) {
	log.Debug("%s: tx [%s] rx [%s]", t.Name,
		Describe(layers.DecodeMOSI(tx)), Describe(layers.DecodeMISO(rx)))
}

// Describe renders the frames of a decoded packet on one line
func Describe(packet gopacket.Packet) string {
	var frames []string
	for _, l := range packet.Layers() {
		if s, ok := l.(fmt.Stringer); ok {
			frames = append(frames, s.String())
		}
	}
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		frames = append(frames, errLayer.Error().Error())
	}
	return strings.Join(frames, ", ")
}

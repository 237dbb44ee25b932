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
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"jinr.ru/greenlab/go-as5047p/pkg/config"
	"jinr.ru/greenlab/go-as5047p/pkg/log"
)

const (
	// Mode is SPI mode 1 of the AS5047P datasheet: CPOL=0, CPHA=1, MOSI
	// is sampled on the falling edge of CLK and MISO changes on the rising edge
	Mode = spi.Mode1
	// frames are sent as two 8-bit words, MSB first
	bitsPerWord = 8
	frameLen    = 2
)

// SpiTransport talks to the sensor through a periph.io SPI port.
// The select line is the chip select of the port.
type SpiTransport struct {
	cfg  *config.SpiConfig
	port spi.PortCloser
	conn spi.Conn
}

var _ Transport = &SpiTransport{}

func NewSpiTransport(cfg *config.SpiConfig) *SpiTransport {
	return &SpiTransport{cfg: cfg}
}

func (t *SpiTransport) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	name := t.cfg.PortName()
	log.Debug("Opening SPI port %s at %d Hz", name, t.cfg.SpeedHz)
	port, err := spireg.Open(name)
	if err != nil {
		return fmt.Errorf("open SPI port %s: %w", name, err)
	}
	conn, err := port.Connect(physic.Frequency(t.cfg.SpeedHz)*physic.Hertz, Mode, bitsPerWord)
	if err != nil {
		port.Close()
		return fmt.Errorf("connect SPI port %s: %w", name, err)
	}
	t.port = port
	t.conn = conn
	return nil
}

func (t *SpiTransport) TransferWord(word uint16) (uint16, error) {
	if t.conn == nil {
		return 0, ErrNotInitialized{Name: t.cfg.PortName()}
	}
	w := make([]byte, frameLen)
	r := make([]byte, frameLen)
	binary.BigEndian.PutUint16(w, word)
	if err := t.conn.Tx(w, r); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r), nil
}

// TransferWords sends one packet per frame so that the chip select is
// released between frames, as the sensor latches a frame on the rising edge.
func (t *SpiTransport) TransferWords(words []uint16) ([]uint16, error) {
	if t.conn == nil {
		return nil, ErrNotInitialized{Name: t.cfg.PortName()}
	}
	packets := make([]spi.Packet, len(words))
	for i, word := range words {
		w := make([]byte, frameLen)
		binary.BigEndian.PutUint16(w, word)
		packets[i] = spi.Packet{
			W:           w,
			R:           make([]byte, frameLen),
			BitsPerWord: bitsPerWord,
		}
	}
	if err := t.conn.TxPackets(packets); err != nil {
		return nil, err
	}
	result := make([]uint16, len(words))
	for i, p := range packets {
		result[i] = binary.BigEndian.Uint16(p.R)
	}
	return result, nil
}

func (t *SpiTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.conn = nil
	return err
}

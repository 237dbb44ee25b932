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

// Package transport moves 16-bit frames between the host and the sensor.
// It does not look at the frame contents.
package transport

import (
	"fmt"
)

// Transport is a synchronous serial link to one sensor. Every word is one
// frame with the select line asserted for its duration.
type Transport interface {
	// Init configures the link (clock, mode, select line)
	Init() error

	// TransferWord exchanges one frame and returns the frame clocked in
	TransferWord(word uint16) (uint16, error)

	// TransferWords exchanges len(words) frames back to back, releasing the
	// select line between frames, and returns the frames clocked in
	TransferWords(words []uint16) ([]uint16, error)

	// Close releases the bus
	Close() error
}

// ErrNotInitialized returned when a transfer is attempted before Init
type ErrNotInitialized struct {
	Name string
}

func (e ErrNotInitialized) Error() string {
	return fmt.Sprintf("Transport is not initialized: %s", e.Name)
}

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

// Package state keeps register values of a sensor in a bbolt database: the
// last value read from every register and a backup of the non-volatile
// registers that can be written back after a power cycle.
package state

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-as5047p/pkg/log"
)

const (
	BucketNamePrefix       = "reg_"
	BackupBucketNamePrefix = "backup_"
)

// ErrBucketNotFound returned when the sensor has no bucket in the database
type ErrBucketNotFound struct {
	Name string
}

func (e ErrBucketNotFound) Error() string {
	return fmt.Sprintf("Bucket not found: %s", e.Name)
}

// ErrRegNotFound returned when a register was never stored
type ErrRegNotFound struct {
	Addr uint16
}

func (e ErrRegNotFound) Error() string {
	return fmt.Sprintf("Register not found: 0x%04X", e.Addr)
}

type RegState struct {
	context.Context
	DB *bbolt.DB
}

// NewRegState opens the database at path and creates the buckets of every
// sensor in sensorNames
func NewRegState(ctx context.Context, path string, sensorNames ...string) (*RegState, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open state db %s: %w", path, err)
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range sensorNames {
			for _, bucket := range []string{bucketName(name), backupBucketName(name)} {
				if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &RegState{
		Context: ctx,
		DB:      db,
	}, nil
}

func uint16ToByte(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func bucketName(sensorName string) string {
	return fmt.Sprintf("%s%s", BucketNamePrefix, sensorName)
}

func backupBucketName(sensorName string) string {
	return fmt.Sprintf("%s%s", BackupBucketNamePrefix, sensorName)
}

func (s *RegState) Close() error {
	return s.DB.Close()
}

func put(tx *bbolt.Tx, bucket string, regs []Reg) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return ErrBucketNotFound{Name: bucket}
	}
	for _, reg := range regs {
		if err := b.Put(uint16ToByte(reg.Addr), uint16ToByte(reg.Value)); err != nil {
			return err
		}
	}
	return nil
}

func getAll(tx *bbolt.Tx, bucket string) ([]Reg, error) {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return nil, ErrBucketNotFound{Name: bucket}
	}
	var regs []Reg
	err := b.ForEach(func(k, v []byte) error {
		regs = append(regs, Reg{
			Addr:  binary.BigEndian.Uint16(k),
			Value: binary.BigEndian.Uint16(v),
		})
		return nil
	})
	sort.Slice(regs, func(i, j int) bool { return regs[i].Addr < regs[j].Addr })
	return regs, err
}

// SetReg stores the last value read from a register
func (s *RegState) SetReg(reg Reg, sensorName string) error {
	log.Debug("Setting register: Addr: %x Value: %x", reg.Addr, reg.Value)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		return put(tx, bucketName(sensorName), []Reg{reg})
	})
}

func (s *RegState) GetReg(addr uint16, sensorName string) (Reg, error) {
	log.Debug("Getting register: Addr: %x", addr)
	reg := Reg{Addr: addr}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(sensorName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(sensorName)}
		}
		valueBytes := b.Get(uint16ToByte(addr))
		if valueBytes == nil {
			return ErrRegNotFound{Addr: addr}
		}
		reg.Value = binary.BigEndian.Uint16(valueBytes)
		return nil
	})
	return reg, err
}

// GetRegAll returns every stored register ordered by address
func (s *RegState) GetRegAll(sensorName string) ([]Reg, error) {
	log.Debug("Getting all registers")
	var regs []Reg
	err := s.DB.View(func(tx *bbolt.Tx) error {
		var err error
		regs, err = getAll(tx, bucketName(sensorName))
		return err
	})
	return regs, err
}

// Backup replaces the stored backup of the sensor with regs
func (s *RegState) Backup(regs []Reg, sensorName string) error {
	log.Debug("Backing up %d registers of %s", len(regs), sensorName)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		name := backupBucketName(sensorName)
		if err := tx.DeleteBucket([]byte(name)); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if _, err := tx.CreateBucket([]byte(name)); err != nil {
			return err
		}
		return put(tx, name, regs)
	})
}

// Restore returns the backup of the sensor ordered by address
func (s *RegState) Restore(sensorName string) ([]Reg, error) {
	var regs []Reg
	err := s.DB.View(func(tx *bbolt.Tx) error {
		var err error
		regs, err = getAll(tx, backupBucketName(sensorName))
		return err
	})
	return regs, err
}

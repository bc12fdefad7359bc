// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type memStore map[string][]byte

func (m memStore) Get(key []byte) ([]byte, error) {
	if v, ok := m[string(key)]; ok {
		return v, nil
	}
	return nil, errNotFound
}

func (m memStore) Has(key []byte) (bool, error) {
	_, ok := m[string(key)]
	return ok, nil
}

func (m memStore) IsNotFound(err error) bool { return err == errNotFound }

func (m memStore) Put(key, val []byte) error {
	m[string(key)] = val
	return nil
}

func (m memStore) Delete(key []byte) error {
	delete(m, string(key))
	return nil
}

func TestBucket(t *testing.T) {
	src := memStore{}
	b := Bucket("s")

	putter := b.NewPutter(src)
	assert.NoError(t, putter.Put([]byte("k"), []byte("v")))
	assert.Equal(t, []byte("v"), src["sk"])

	getter := b.NewGetter(src)
	v, err := getter.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := getter.Has([]byte("k"))
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, putter.Delete([]byte("k")))
	_, err = getter.Get([]byte("k"))
	assert.True(t, getter.IsNotFound(err))
}

func TestBucketRange(t *testing.T) {
	r := Bucket("s").Range()
	assert.Equal(t, []byte("s"), r.Start)
	assert.Equal(t, []byte("t"), r.Limit)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/kv"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get([]byte("missing"))
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	has, err := db.Has([]byte("a"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete([]byte("a")))
	has, err = db.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLevelDBBatchAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	require.NoError(t, batch.Put([]byte("s1"), []byte("x")))
	require.NoError(t, batch.Put([]byte("s2"), []byte("y")))
	require.NoError(t, batch.Put([]byte("t1"), []byte("z")))
	assert.Equal(t, 3, batch.Len())

	// nothing visible before Write
	_, err = db.Get([]byte("s1"))
	assert.True(t, db.IsNotFound(err))
	require.NoError(t, batch.Write())

	iter := db.Iterate(kv.Bucket("s").Range())
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"s1", "s2"}, keys)
}

func TestPersistentLevelDB(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(dir, Options{CacheSize: 32})
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestBatchDelete(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	batch := db.NewBatch()
	require.NoError(t, batch.Delete([]byte("k")))
	require.NoError(t, batch.Put([]byte("j"), []byte("w")))
	require.NoError(t, batch.Write())

	_, err = db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))
	v, err := db.Get([]byte("j"))
	require.NoError(t, err)
	assert.Equal(t, []byte("w"), v)
}

// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kpath_test

import (
	"testing"

	"github.com/antimetal/oskernel/pkg/kernel/kpath"
	"github.com/stretchr/testify/assert"
)

func TestFindPartName(t *testing.T) {
	src := "/var/log/app.log"
	assert.Equal(t, "app.log", kpath.FindPart(src, kpath.NameExt).Slice(src))
	assert.Equal(t, "app", kpath.FindPart(src, kpath.Name).Slice(src))
	assert.Equal(t, "log", kpath.FindPart(src, kpath.Extension).Slice(src))
	assert.Equal(t, "/var/log/", kpath.FindPart(src, kpath.Path).Slice(src))
}

func TestFindPartDotFile(t *testing.T) {
	src := "/home/user/.bashrc"
	assert.Equal(t, ".bashrc", kpath.FindPart(src, kpath.Name).Slice(src))
	assert.False(t, kpath.FindPart(src, kpath.Extension).Found)
}

func TestFindPartDotAndDotDot(t *testing.T) {
	for _, segment := range []string{".", ".."} {
		src := "/a/b/" + segment
		assert.Equal(t, segment, kpath.FindPart(src, kpath.Name).Slice(src))
		assert.False(t, kpath.FindPart(src, kpath.Extension).Found)
	}
}

func TestFindPartTrailingSeparator(t *testing.T) {
	src := "/a/b/"
	assert.False(t, kpath.FindPart(src, kpath.Name).Found)
	assert.False(t, kpath.FindPart(src, kpath.NameExt).Found)
	assert.Equal(t, "/a/b/", kpath.FindPart(src, kpath.Path).Slice(src))
}

func TestFindPartNoVolumeOnPosix(t *testing.T) {
	assert.False(t, kpath.FindPart("/a/b/c", kpath.Volume).Found)
	assert.False(t, kpath.FindPart("/a/b/c", kpath.Node).Found)
}

func TestFindPartNoSeparator(t *testing.T) {
	src := "file.txt"
	assert.False(t, kpath.FindPart(src, kpath.Path).Found)
	assert.Equal(t, "file", kpath.FindPart(src, kpath.Name).Slice(src))
	assert.Equal(t, "txt", kpath.FindPart(src, kpath.Extension).Slice(src))
}

func TestRemoveLevel(t *testing.T) {
	out, ok := kpath.RemoveLevel("/a/b/c")
	assert.True(t, ok)
	assert.Equal(t, "/a/b/", out)

	out, ok = kpath.RemoveLevel("/a/b/")
	assert.True(t, ok)
	assert.Equal(t, "/a/", out)

	out, ok = kpath.RemoveLevel("noseparator")
	assert.False(t, ok)
	assert.Equal(t, "noseparator", out)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "/a/b", kpath.Combine("/a", "b"))
	assert.Equal(t, "/a/b", kpath.Combine("/a/", "b"))
	assert.Equal(t, "/a/b", kpath.Combine("/a", "/b"))
	assert.Equal(t, "/a/b", kpath.Combine("/a/", "/b"))
	assert.Equal(t, "/a", kpath.Combine("/a", ""))
	assert.Equal(t, "b", kpath.Combine("", "b"))
}

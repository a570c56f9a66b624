//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package sampleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatientID(t *testing.T) {
	assert.Equal(t, "TCGA-AA-0001", PatientID("TCGA-AA-0001-01Z-00-DX1"))
	assert.Equal(t, "TCGA-AA-0001", PatientID("TCGA-AA-0001"))
	assert.Equal(t, "short", PatientID("short"))
	assert.Equal(t, "", PatientID(""))
}

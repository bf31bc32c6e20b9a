// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog(t *testing.T) {
	var (
		assert        = assert.New(t)
		require       = require.New(t)
		core, logs    = observer.New(zap.DebugLevel)
		ctx           = sallust.With(context.Background(), zap.New(core))
		next          = new(mockConnector)
		conn          = new(mockConn)
		names         = []string{"a-2020.01.01", "b-2020.01.01"}
		deleteTimeout = 5 * time.Second
	)

	next.On("Connect", mock.Anything, "10.0.0.1").Return(conn, nil).Once()
	conn.On("Ping", mock.Anything).Return(true, nil).Once()
	conn.On("ListIndices", mock.Anything).Return(names, nil).Once()
	conn.On("DeleteIndices", mock.Anything, names, deleteTimeout).Return(nil).Once()
	conn.On("Close").Return(nil).Once()

	c, err := Log(next).Connect(ctx, "10.0.0.1")
	require.NoError(err)

	ok, err := c.Ping(ctx)
	assert.True(ok)
	assert.NoError(err)

	listed, err := c.ListIndices(ctx)
	assert.Equal(names, listed)
	assert.NoError(err)

	assert.NoError(c.DeleteIndices(ctx, names, deleteTimeout))
	assert.NoError(c.Close())

	assert.Equal(4, logs.Len())
	assert.Equal(4, logs.FilterField(zap.String("address", "10.0.0.1")).Len())
	assert.Equal(2, logs.FilterField(zap.Int("indicesSize", 2)).Len())
	conn.AssertExpectations(t)
}

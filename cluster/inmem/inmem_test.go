// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/curator/cluster"
)

type InMemTestSuite struct {
	suite.Suite
	Address            string
	UnreachableAddress string
	Indices            []string
	InMem              *InMem
	Ctx                context.Context
}

func (s *InMemTestSuite) SetupSuite() {
	s.Address = "10.0.0.1"
	s.UnreachableAddress = "10.0.0.2"
	s.Indices = []string{"app-2020.01.03", "app-2020.01.01", "noformat"}
	s.Ctx = context.Background()
}

func (s *InMemTestSuite) SetupTest() {
	s.InMem = FromConfig(Config{
		Clusters: map[string][]string{
			s.Address: s.Indices,
		},
		Unreachable: []string{s.UnreachableAddress},
	})
}

func (s *InMemTestSuite) connect(address string) cluster.Conn {
	c, err := s.InMem.Connect(s.Ctx, address)
	s.Require().NoError(err)
	return c
}

func (s *InMemTestSuite) TestConnectUnknown() {
	c, err := s.InMem.Connect(s.Ctx, "10.0.0.99")
	s.Nil(c)
	s.True(errors.Is(err, cluster.ErrUnknownTarget))
	s.Equal([]interface{}{"address", "10.0.0.99"}, errors.GetDetails(err))
}

func (s *InMemTestSuite) TestConnectCanceled() {
	ctx, cancel := context.WithCancel(s.Ctx)
	cancel()
	_, err := s.InMem.Connect(ctx, s.Address)
	s.ErrorIs(err, context.Canceled)
}

func (s *InMemTestSuite) TestPing() {
	ok, err := s.connect(s.Address).Ping(s.Ctx)
	s.True(ok)
	s.NoError(err)

	ok, err = s.connect(s.UnreachableAddress).Ping(s.Ctx)
	s.False(ok)
	s.NoError(err)
}

func (s *InMemTestSuite) TestListIndicesSorted() {
	names, err := s.connect(s.Address).ListIndices(s.Ctx)
	s.NoError(err)
	s.Equal([]string{"app-2020.01.01", "app-2020.01.03", "noformat"}, names)
}

func (s *InMemTestSuite) TestListIndicesUnreachable() {
	names, err := s.connect(s.UnreachableAddress).ListIndices(s.Ctx)
	s.Nil(names)
	s.True(errors.Is(err, cluster.ErrUnreachable))
}

func (s *InMemTestSuite) TestDeleteIndices() {
	c := s.connect(s.Address)
	s.NoError(c.DeleteIndices(s.Ctx, []string{"app-2020.01.01"}, time.Minute))
	s.Equal([]string{"app-2020.01.03", "noformat"}, s.InMem.Indices(s.Address))
}

func (s *InMemTestSuite) TestDeleteIndicesMissing() {
	c := s.connect(s.Address)
	err := c.DeleteIndices(s.Ctx, []string{"missing-1", "app-2020.01.01", "missing-2"}, time.Minute)
	s.Require().Error(err)
	s.True(errors.Is(err, cluster.ErrIndexNotFound))
	s.Len(errors.GetErrors(err), 2)
	s.Equal([]string{"app-2020.01.03", "noformat"}, s.InMem.Indices(s.Address))
}

func (s *InMemTestSuite) TestClose() {
	c := s.connect(s.Address)
	s.NoError(c.Close())
	s.ErrorIs(c.Close(), cluster.ErrClosed)

	_, err := c.Ping(s.Ctx)
	s.ErrorIs(err, cluster.ErrClosed)
	_, err = c.ListIndices(s.Ctx)
	s.ErrorIs(err, cluster.ErrClosed)
	s.ErrorIs(c.DeleteIndices(s.Ctx, []string{"noformat"}, time.Minute), cluster.ErrClosed)
	s.Len(s.InMem.Indices(s.Address), 3)
}

func (s *InMemTestSuite) TestIndicesUnknown() {
	s.Nil(s.InMem.Indices("10.0.0.99"))
	s.Equal([]string{}, s.InMem.Indices(s.UnreachableAddress))
}

func (s *InMemTestSuite) TestAddCluster() {
	s.InMem.AddCluster(s.Address, "web-2020.01.01")
	s.InMem.AddCluster("10.0.0.3")
	s.Len(s.InMem.Indices(s.Address), 4)
	s.Equal([]string{}, s.InMem.Indices("10.0.0.3"))

	s.InMem.SetUnreachable(s.UnreachableAddress, false)
	ok, err := s.connect(s.UnreachableAddress).Ping(s.Ctx)
	s.True(ok)
	s.NoError(err)
}

func TestInMem(t *testing.T) {
	suite.Run(t, new(InMemTestSuite))
}

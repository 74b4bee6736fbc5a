package ethereum

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/vaultkit/pkg/logger"
)

type chainService struct {
	id  int64
	err error
}

func (s *chainService) ChainId() (*hexutil.Big, error) { //nolint:revive
	if s.err != nil {
		return nil, s.err
	}

	return (*hexutil.Big)(big.NewInt(s.id)), nil
}

func inProcClient(t *testing.T, svc *chainService) *ethclient.Client {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)

	return ethclient.NewClient(rpc.DialInProc(server))
}

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.Attempts = 1
	cfg.Delay = 0

	return cfg
}

func TestMultiClient_Failover(t *testing.T) {
	t.Parallel()

	bad := inProcClient(t, &chainService{err: errors.New("unavailable")})
	good := inProcClient(t, &chainService{id: 1})

	mc, err := NewMultiClientFromClients(logger.Test(t), "test", bad, good)
	require.NoError(t, err)
	mc.RetryConfig = fastRetry()

	id, err := mc.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Int64())

	clients := mc.clients()
	require.Len(t, clients, 2)
	assert.Same(t, good, clients[0], "healthy client is promoted")
	assert.Same(t, bad, clients[1])
}

func TestMultiClient_AllFail(t *testing.T) {
	t.Parallel()

	mc, err := NewMultiClientFromClients(logger.Test(t), "test",
		inProcClient(t, &chainService{err: errors.New("first down")}),
		inProcClient(t, &chainService{err: errors.New("second down")}),
	)
	require.NoError(t, err)
	mc.RetryConfig = fastRetry()

	_, err = mc.ChainID(t.Context())
	require.ErrorContains(t, err, "all RPC clients failed")
	require.ErrorContains(t, err, "second down")
}

func TestNewMultiClient_NoURLs(t *testing.T) {
	t.Parallel()

	_, err := NewMultiClient(t.Context(), logger.Test(t), "test", nil)
	require.Error(t, err)

	_, err = NewMultiClientFromClients(logger.Test(t), "test")
	require.Error(t, err)
}

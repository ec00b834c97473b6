// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/luxfi/rpc"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

const DefaultRequestTimeout = 10 * time.Second

var (
	errNoAddresses = errors.New("no platform addresses configured")

	_ Client = (*rpcClient)(nil)
)

// SubmitResult is the platform's verdict on one submitted vote. A rejection
// is terminal for that identity's submission; transport failures are reported
// through the error return instead.
type SubmitResult struct {
	Accepted bool
	Reason   string
}

// Client is the query/submit contract against the decentralized platform.
type Client interface {
	// ContestedResources returns the full set of currently open contests.
	ContestedResources(ctx context.Context) ([]model.ContestedResource, error)

	// ContestedResource returns the current snapshot of one contest.
	ContestedResource(ctx context.Context, key string) (model.ContestedResource, error)

	// SubmitVote submits one signed vote. The returned result is only
	// meaningful when err is nil.
	SubmitVote(ctx context.Context, vote SignedVote) (SubmitResult, error)
}

type rpcClient struct {
	requesters     []rpc.EndpointRequester
	next           atomic.Uint64
	requestTimeout time.Duration
}

// NewClient builds a client over one or more platform endpoints. Requests
// rotate round-robin across endpoints; a failing endpoint stays in rotation
// rather than being banned.
func NewClient(addresses []string, requestTimeout time.Duration) (Client, error) {
	if len(addresses) == 0 {
		return nil, errNoAddresses
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	requesters := make([]rpc.EndpointRequester, len(addresses))
	for i, address := range addresses {
		requesters[i] = rpc.NewEndpointRequester(address + "/ext/platform")
	}
	return &rpcClient{
		requesters:     requesters,
		requestTimeout: requestTimeout,
	}, nil
}

func (c *rpcClient) send(ctx context.Context, method string, args any, reply any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	requester := c.requesters[c.next.Add(1)%uint64(len(c.requesters))]
	return classifyTransport(requester.SendRequest(ctx, method, args, reply))
}

func (c *rpcClient) ContestedResources(ctx context.Context) ([]model.ContestedResource, error) {
	reply := &getContestedResourcesReply{}
	if err := c.send(ctx, "platform.getContestedResources", struct{}{}, reply); err != nil {
		return nil, err
	}

	contests := make([]model.ContestedResource, len(reply.ContestedResources))
	for i, wire := range reply.ContestedResources {
		contest, err := wire.contest()
		if err != nil {
			return nil, err
		}
		contests[i] = contest
	}
	return contests, nil
}

func (c *rpcClient) ContestedResource(ctx context.Context, key string) (model.ContestedResource, error) {
	reply := &getContestedResourceReply{}
	err := c.send(ctx, "platform.getContestedResource", &getContestedResourceArgs{
		NormalizedName: key,
	}, reply)
	if err != nil {
		return model.ContestedResource{}, err
	}
	return reply.ContestedResource.contest()
}

func (c *rpcClient) SubmitVote(ctx context.Context, vote SignedVote) (SubmitResult, error) {
	choice, contestant := choiceWire(vote.Choice)
	reply := &submitVoteReply{}
	err := c.send(ctx, "platform.submitVote", &submitVoteArgs{
		Voter:          vote.Voter.String(),
		NormalizedName: vote.ContestKey,
		Choice:         choice,
		Contestant:     contestant,
		Payload:        vote.Payload,
		Signature:      vote.Signature,
	}, reply)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		Accepted: reply.Accepted,
		Reason:   reply.Reason,
	}, nil
}

package runpod

import (
	"context"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
)

// Endpoint describes a serverless endpoint owned by the API key's account.
type Endpoint struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GpuIDs      string `json:"gpuIds"`
	WorkersMin  int    `json:"workersMin"`
	WorkersMax  int    `json:"workersMax"`
	IdleTimeout int    `json:"idleTimeout"`
}

type endpointsResponse struct {
	Myself struct {
		Endpoints []Endpoint `json:"endpoints"`
	} `json:"myself"`
}

// Endpoints lists the account's serverless endpoints.
func (c *Client) Endpoints(ctx context.Context) ([]Endpoint, error) {
	query := graphql.NewRequest(
		`query Endpoints {
			myself {
			  endpoints {
				id
				name
				gpuIds
				workersMin
				workersMax
				idleTimeout
			  }
			}
		  }`,
	)
	query.Header.Set("Authorization", "Bearer "+c.Environment.APIKey)

	// run it and capture the response
	var respData endpointsResponse
	if err := c.graphql.Run(ctx, query, &respData); err != nil {
		return nil, errors.Wrap(err, "failed to fetch endpoints")
	}
	return respData.Myself.Endpoints, nil
}

// FindEndpoint returns the endpoint with the given ID, or nil when the account has no
// such endpoint.
func FindEndpoint(endpoints []Endpoint, id string) *Endpoint {
	for i := range endpoints {
		if endpoints[i].ID == id {
			return &endpoints[i]
		}
	}
	return nil
}

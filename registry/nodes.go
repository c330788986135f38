package registry

import (
	"context"
	"net/url"

	"eaisdo/model"
)

// List fetches every node. Records without an id get a derived one so the
// table always has a unique row key.
func (c *Client) List(ctx context.Context) ([]model.Node, error) {
	var nodes []model.Node
	if err := c.get(ctx, "", &nodes); err != nil {
		return nil, err
	}
	for i := range nodes {
		nodes[i] = model.EnsureIdentifier(nodes[i])
	}
	return nodes, nil
}

// Create submits a new record. The registry assigns the id.
func (c *Client) Create(ctx context.Context, f model.Fields) error {
	return c.post(ctx, "", f, nil)
}

// Update sends a partial update addressed by the record id.
func (c *Client) Update(ctx context.Context, n model.Node) error {
	if n.ID == "" {
		return ErrMissingID
	}
	return c.patch(ctx, "/"+url.PathEscape(n.ID), n, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return c.delete(ctx, "/"+url.PathEscape(id))
}

// Ping checks that the registry answers a small list request.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "?limit=1", nil)
}

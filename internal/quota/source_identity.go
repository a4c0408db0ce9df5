package quota

import "context"

// MetadataClient is the subset of the identity provider API used for quotas.
type MetadataClient interface {
	FreeUsage(ctx context.Context, userID string) (int, bool, error)
	SetFreeUsage(ctx context.Context, userID string, remaining int) error
}

// IdentitySource keeps balances in the identity provider's user metadata.
type IdentitySource struct {
	Client MetadataClient
}

func NewIdentitySource(client MetadataClient) *IdentitySource {
	return &IdentitySource{Client: client}
}

func (s *IdentitySource) Get(ctx context.Context, ownerID string) (Counter, error) {
	n, ok, err := s.Client.FreeUsage(ctx, ownerID)
	if err != nil {
		return Counter{}, err
	}
	return Counter{Remaining: n, Set: ok}, nil
}

func (s *IdentitySource) Update(ctx context.Context, ownerID string, remaining int) error {
	return s.Client.SetFreeUsage(ctx, ownerID, remaining)
}

var _ Source = (*IdentitySource)(nil)

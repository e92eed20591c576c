package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"gatekeeper/internal/entity"
	"gatekeeper/internal/ipaddr"
	"gatekeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAllowList struct {
	entries []entity.AllowedAddress

	listErr error
	addErr  error
}

var _ repository.AllowListRepository = (*fakeAllowList)(nil)

func (f *fakeAllowList) List(context.Context) ([]entity.AllowedAddress, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.AllowedAddress(nil), f.entries...), nil
}

func (f *fakeAllowList) Add(_ context.Context, entry *entity.AllowedAddress) error {
	if f.addErr != nil {
		return f.addErr
	}
	for _, existing := range f.entries {
		if existing.Address == entry.Address {
			return repository.ErrDuplicateAddress
		}
	}
	entry.ID = uuid.New()
	entry.AddedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAllowList) Remove(_ context.Context, id uuid.UUID) error {
	for i, existing := range f.entries {
		if existing.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePublicAccess struct {
	config *entity.PublicAccessConfig

	getErr error
	setErr error
}

var _ repository.PublicAccessRepository = (*fakePublicAccess)(nil)

func (f *fakePublicAccess) Get(context.Context) (*entity.PublicAccessConfig, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.config == nil {
		return &entity.PublicAccessConfig{ID: entity.PublicAccessConfigID}, nil
	}
	copied := *f.config
	return &copied, nil
}

func (f *fakePublicAccess) Set(_ context.Context, config *entity.PublicAccessConfig) error {
	if f.setErr != nil {
		return f.setErr
	}
	copied := *config
	f.config = &copied
	return nil
}

type fakeAudits struct {
	logs []entity.AuditLog
}

var _ repository.AuditLogRepository = (*fakeAudits)(nil)

func (f *fakeAudits) Log(_ context.Context, log *entity.AuditLog) error {
	f.logs = append(f.logs, *log)
	return nil
}

type fakeDetector struct {
	addresses []string
	err       error
	calls     int
}

func (f *fakeDetector) Detect(context.Context) ([]string, error) {
	f.calls++
	return f.addresses, f.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newAccessService(allowList *fakeAllowList, publicAccess *fakePublicAccess, detector AddressDetector) *AccessService {
	return NewAccessService(allowList, publicAccess, &fakeAudits{}, detector, quietLogger(), AccessConfig{})
}

func TestDecideNotAuthorizedWhenAllowListEmpty(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	verdict := svc.Decide(context.Background(), []string{"203.0.113.7"})

	assert.False(t, verdict.Allowed)
	assert.Equal(t, ReasonIPNotAuthorized, verdict.Reason)
}

func TestDecideAuthorizedOnAllowListMatch(t *testing.T) {
	allowList := &fakeAllowList{entries: []entity.AllowedAddress{
		{ID: uuid.New(), Address: "203.0.113.7", AddressType: ipaddr.TypeIPv4},
	}}
	svc := newAccessService(allowList, &fakePublicAccess{}, nil)

	verdict := svc.Decide(context.Background(), []string{"203.0.113.7"})

	assert.True(t, verdict.Allowed)
	assert.Equal(t, ReasonIPAuthorized, verdict.Reason)
	assert.Equal(t, "203.0.113.7", verdict.MatchedAddress)
	assert.Equal(t, ipaddr.TypeIPv4, verdict.DetectedType)
}

func TestDecideMatchesNormalizedIPv6(t *testing.T) {
	allowList := &fakeAllowList{entries: []entity.AllowedAddress{
		{ID: uuid.New(), Address: "2001:db8::1", AddressType: ipaddr.TypeIPv6},
	}}
	svc := newAccessService(allowList, &fakePublicAccess{}, nil)

	verdict := svc.Decide(context.Background(), []string{"2001:0DB8:0000:0000:0000:0000:0000:0001"})

	assert.True(t, verdict.Allowed)
	assert.Equal(t, ReasonIPAuthorized, verdict.Reason)
	assert.Equal(t, "2001:db8::1", verdict.MatchedAddress)
}

func TestDecidePublicAccessWinsWithoutAddresses(t *testing.T) {
	publicAccess := &fakePublicAccess{config: &entity.PublicAccessConfig{
		ID:        entity.PublicAccessConfigID,
		Enabled:   true,
		EnabledBy: "admin@example.com",
		EnabledAt: time.Now(),
	}}
	svc := newAccessService(&fakeAllowList{}, publicAccess, nil)

	verdict := svc.Decide(context.Background(), nil)

	assert.True(t, verdict.Allowed)
	assert.Equal(t, ReasonPublicAccess, verdict.Reason)
}

func TestDecidePublicAccessIgnoresAllowList(t *testing.T) {
	publicAccess := &fakePublicAccess{config: &entity.PublicAccessConfig{
		ID:      entity.PublicAccessConfigID,
		Enabled: true,
	}}
	svc := newAccessService(&fakeAllowList{}, publicAccess, nil)

	verdict := svc.Decide(context.Background(), []string{"definitely not an ip"})

	assert.True(t, verdict.Allowed)
	assert.Equal(t, ReasonPublicAccess, verdict.Reason)
}

func TestDecideNoAddressesDetected(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	verdict := svc.Decide(context.Background(), nil)

	assert.False(t, verdict.Allowed)
	assert.Equal(t, ReasonIPNotDetected, verdict.Reason)
}

func TestDecideAllAddressesInvalid(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	verdict := svc.Decide(context.Background(), []string{"299.0.0.1", "nope"})

	assert.False(t, verdict.Allowed)
	assert.Equal(t, ReasonInvalidIPFormat, verdict.Reason)
}

func TestDecideDetectorSuppliesAddresses(t *testing.T) {
	allowList := &fakeAllowList{entries: []entity.AllowedAddress{
		{ID: uuid.New(), Address: "198.51.100.9", AddressType: ipaddr.TypeIPv4},
	}}
	detector := &fakeDetector{addresses: []string{"198.51.100.9"}}
	svc := newAccessService(allowList, &fakePublicAccess{}, detector)

	verdict := svc.Decide(context.Background(), nil)

	assert.True(t, verdict.Allowed)
	assert.Equal(t, 1, detector.calls)
}

func TestDecideDetectorFailureIsNetworkError(t *testing.T) {
	detector := &fakeDetector{err: errors.New("connection refused")}
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, detector)

	verdict := svc.Decide(context.Background(), nil)

	assert.False(t, verdict.Allowed)
	assert.Equal(t, ReasonNetworkError, verdict.Reason)
}

func TestDecideStoreFailureIsVerificationFailed(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{getErr: errors.New("timeout")}, nil)
	verdict := svc.Decide(context.Background(), []string{"203.0.113.7"})
	assert.Equal(t, ReasonVerificationFailed, verdict.Reason)

	svc = newAccessService(&fakeAllowList{listErr: errors.New("timeout")}, &fakePublicAccess{}, nil)
	verdict = svc.Decide(context.Background(), []string{"203.0.113.7"})
	assert.Equal(t, ReasonVerificationFailed, verdict.Reason)
	assert.False(t, verdict.Allowed)
}

func TestDecideDevBypass(t *testing.T) {
	svc := NewAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil, nil, quietLogger(), AccessConfig{DevBypass: true})

	verdict := svc.Decide(context.Background(), nil)

	assert.True(t, verdict.Allowed)
	assert.Equal(t, ReasonPublicAccess, verdict.Reason)
}

func TestAddAllowedNormalizesAndRecords(t *testing.T) {
	allowList := &fakeAllowList{}
	svc := newAccessService(allowList, &fakePublicAccess{}, nil)

	entry, err := svc.AddAllowed(context.Background(), " 2001:DB8::0001 ", "office", "admin@example.com")

	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", entry.Address)
	assert.Equal(t, ipaddr.TypeIPv6, entry.AddressType)
	assert.Equal(t, "admin@example.com", entry.AddedBy)
	assert.Len(t, allowList.entries, 1)
}

func TestAddAllowedRejectsDuplicate(t *testing.T) {
	allowList := &fakeAllowList{}
	svc := newAccessService(allowList, &fakePublicAccess{}, nil)

	_, err := svc.AddAllowed(context.Background(), "10.0.0.1", "", "admin@example.com")
	require.NoError(t, err)

	_, err = svc.AddAllowed(context.Background(), "10.0.0.1", "", "admin@example.com")
	assert.ErrorIs(t, err, ErrDuplicateAddress)
	assert.Len(t, allowList.entries, 1)
}

func TestAddAllowedRejectsInvalidAddress(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	_, err := svc.AddAllowed(context.Background(), "300.1.1.1", "", "admin@example.com")

	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestRemoveAllowedMissingEntry(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	err := svc.RemoveAllowed(context.Background(), uuid.New(), "admin@example.com")

	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestSetPublicAccessReplacesWholeRecord(t *testing.T) {
	publicAccess := &fakePublicAccess{}
	svc := newAccessService(&fakeAllowList{}, publicAccess, nil)
	now := time.Now()

	config, err := svc.SetPublicAccess(context.Background(), true, "admin@example.com", "maintenance window", now)

	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.Equal(t, "admin@example.com", config.EnabledBy)
	assert.Equal(t, now, config.EnabledAt)
	assert.Equal(t, "maintenance window", config.Reason)

	verdict := svc.Decide(context.Background(), nil)
	assert.Equal(t, ReasonPublicAccess, verdict.Reason)
}

func TestSetPublicAccessRequiresActor(t *testing.T) {
	svc := newAccessService(&fakeAllowList{}, &fakePublicAccess{}, nil)

	_, err := svc.SetPublicAccess(context.Background(), true, "  ", "", time.Now())

	assert.ErrorIs(t, err, ErrInvalidInput)
}

package study

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CodeGenerator creates share codes.
type CodeGenerator interface {
	NewCode() (string, error)
}

// Base36Codes joins two independent random base-36 strings. Each half carries
// 64 random bits; collisions are not checked.
type Base36Codes struct{}

func (Base36Codes) NewCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		part := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
		b.WriteString(strings.Repeat("0", 13-len(part)))
		b.WriteString(part)
	}
	return b.String(), nil
}

// ShareService publishes point-in-time, revocable copies of a sessions map.
type ShareService struct {
	repo  ShareRepository
	clock Clock
	codes CodeGenerator
}

func NewShareService(repo ShareRepository, clock Clock, codes CodeGenerator) *ShareService {
	if codes == nil {
		codes = Base36Codes{}
	}
	return &ShareService{repo: repo, clock: clock, codes: codes}
}

// Create stores a deep copy of m and returns its code. Later changes to m
// never reach the snapshot.
func (s *ShareService) Create(ctx context.Context, userID uint, m SessionsMap) (Snapshot, error) {
	if err := m.Validate(); err != nil {
		return Snapshot{}, err
	}
	code, err := s.codes.NewCode()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Code:      code,
		UserID:    userID,
		Payload:   m.Clone(),
		CreatedAt: s.clock.Now(),
		Active:    true,
	}
	if err := s.repo.CreateSnapshot(ctx, snap); err != nil {
		return Snapshot{}, storeFailure("create snapshot", err)
	}
	snap.Payload = snap.Payload.Clone()
	return snap, nil
}

// Read returns the payload of an active snapshot. Unknown and deactivated
// codes both yield ErrNotFound.
func (s *ShareService) Read(ctx context.Context, code string) (SessionsMap, error) {
	snap, err := s.repo.GetSnapshot(ctx, code)
	if err != nil {
		return nil, storeFailure("get snapshot", err)
	}
	if !snap.Active {
		return nil, fmt.Errorf("get snapshot: %w", ErrNotFound)
	}
	return snap.Payload.Clone(), nil
}

// Deactivate permanently disables code. It returns true whenever the record
// exists, including when it was already inactive.
func (s *ShareService) Deactivate(ctx context.Context, code string) (bool, error) {
	ok, err := s.repo.DeactivateSnapshot(ctx, code)
	if err != nil {
		return false, storeFailure("deactivate snapshot", err)
	}
	return ok, nil
}

// DeactivateOwned is Deactivate restricted to snapshots owned by userID.
// Someone else's code is reported as missing.
func (s *ShareService) DeactivateOwned(ctx context.Context, userID uint, code string) (bool, error) {
	snap, err := s.repo.GetSnapshot(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, storeFailure("get snapshot", err)
	}
	if snap.UserID != userID {
		return false, nil
	}
	return s.Deactivate(ctx, code)
}

// List returns userID's snapshots, newest first, without payloads.
func (s *ShareService) List(ctx context.Context, userID uint) ([]Snapshot, error) {
	snaps, err := s.repo.ListSnapshots(ctx, userID)
	if err != nil {
		return nil, storeFailure("list snapshots", err)
	}
	for i := range snaps {
		snaps[i].Payload = nil
	}
	return snaps, nil
}

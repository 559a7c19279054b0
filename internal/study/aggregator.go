package study

import "context"

// Aggregator merges completed sessions into a user's day records and keeps a
// read-through cache of the days it has seen. Totals are always derived from
// the cached sessions.
type Aggregator struct {
	userID uint
	store  SessionStore
	days   map[string]DayRecord
}

func NewAggregator(userID uint, store SessionStore) *Aggregator {
	return &Aggregator{userID: userID, store: store, days: make(map[string]DayRecord)}
}

// Day reloads date from the store and caches it.
func (a *Aggregator) Day(ctx context.Context, date string) (DayRecord, error) {
	rec, err := a.store.ListSessions(ctx, a.userID, date)
	if err != nil {
		return DayRecord{}, storeFailure("list sessions", err)
	}
	rec = rec.Clone()
	a.days[date] = rec
	return rec.Clone(), nil
}

// Record appends s to date/p with exactly one store write. The cache only
// changes after the write succeeds.
func (a *Aggregator) Record(ctx context.Context, date string, p Period, s StudySession) (DayRecord, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return DayRecord{}, err
	}
	if err := a.store.AppendSession(ctx, a.userID, date, p, s); err != nil {
		return DayRecord{}, storeFailure("append session", err)
	}
	rec, ok := a.days[date]
	if !ok {
		// 缓存未命中时回源读取，结果已包含刚写入的记录
		return a.Day(ctx, date)
	}
	rec = rec.Append(p, s)
	a.days[date] = rec
	return rec.Clone(), nil
}

// ClearDay removes every session of date, both periods at once.
func (a *Aggregator) ClearDay(ctx context.Context, date string) error {
	if err := a.store.ClearSessions(ctx, a.userID, date); err != nil {
		return storeFailure("clear sessions", err)
	}
	a.days[date] = NewDayRecord()
	return nil
}

// History loads the full sessions map from the store. The result is not cached.
func (a *Aggregator) History(ctx context.Context) (SessionsMap, error) {
	m, err := a.store.SessionHistory(ctx, a.userID)
	if err != nil {
		return nil, storeFailure("load history", err)
	}
	return m.Clone(), nil
}

// Cached returns the cached record of date without touching the store.
func (a *Aggregator) Cached(date string) (DayRecord, bool) {
	rec, ok := a.days[date]
	if !ok {
		return NewDayRecord(), false
	}
	return rec.Clone(), true
}

// PeriodTotal reloads date and returns the recorded total of p.
func (a *Aggregator) PeriodTotal(ctx context.Context, date string, p Period) (int64, error) {
	rec, err := a.Day(ctx, date)
	if err != nil {
		return 0, err
	}
	return rec.Totals().Period(p), nil
}

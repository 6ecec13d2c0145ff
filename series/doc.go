// Package series provides a sorted, append-only container over a block tree
// that one writer and any number of readers can share without read locks.
//
// # Versions
//
// A write bumps NextVersion, changes the tree and then publishes the same
// number as Version. A read loads Version, reads, and accepts the result only
// if NextVersion still equals it; otherwise it yields and retries. The retry
// budget is bounded by WithMaxRetries, after which the read fails with
// errs.ErrBusy and the series logs the failure.
//
// # Cursors
//
//	s, _ := series.New[int64, float64]()
//	_ = s.Append(1, 1.5)
//	c := s.NewCursor()
//	defer c.Close()
//	for {
//		ok, err := c.MoveNext()
//		if err != nil || !ok {
//			break
//		}
//		k, v := c.Current()
//		_, _ = k, v
//	}
//
// A cursor holds a reference to its current leaf. A Bookmark records the
// position without the reference; Series.Resume turns it back into a cursor
// as long as the leaf has not been released.
package series

package service

import "time"

// nopMetrics is the recorder a service uses until WithMetrics is called.
type nopMetrics struct{}

func (nopMetrics) Registered() {}
func (nopMetrics) Login(bool) {}
func (nopMetrics) StockAdjusted(string) {}
func (nopMetrics) Placed(time.Duration) {}
func (nopMetrics) Replayed(time.Duration) {}
func (nopMetrics) Failed(string, time.Duration) {}
func (nopMetrics) Compensated(bool) {}

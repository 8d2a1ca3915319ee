// Package observable decorates command and query handlers with metrics,
// tracing and logging, so the handlers themselves stay free of these concerns.
//
//	handler, _ := command.NewCommandHandler[command.LoanItem](store, policy)
//	observed, _ := observable.NewCommandWrapper[command.LoanItem](
//		handler,
//		observable.WithCommandMetrics[command.LoanItem](metricsCollector),
//		observable.WithCommandTracing[command.LoanItem](tracingCollector),
//	)
package observable

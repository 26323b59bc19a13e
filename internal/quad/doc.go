// Package quad implements the vectorized adaptive Gauss-Kronrod
// integration driver. One Driver invocation owns all of its state
// (queue, accumulators); independent calls may run concurrently.
//
// The refinement loop is sequential by design: each subdivision
// decision depends on the updated global error. Concurrency lives one
// level down, in the batch evaluator, which fans the (integrand,
// abscissa) cells of the current interval out over a bounded worker
// pool and joins them before any estimate is computed.
package quad

// Package queue provides the asynchronous job queue behind the
// task.JobHandle abstraction: a Broker dispatches tasks onto a queue
// class and returns a handle the scheduler polls, a Registry maps task
// names to their logic on the worker side, and a Manager enforces
// per-class rate limits and concurrency caps.
//
// Two brokers ship with the package: MemoryBroker executes dispatched
// tasks on in-process goroutines and backs unit tests; RedisBroker
// spans processes, with a worker pool consuming Redis lists and job
// status written back to Redis for handle polling.
package queue

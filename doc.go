/*
Package simflow is a branching questionnaire ("simulation") engine.

A form is a graph of prioritized blocks of questions. Answers can activate
further blocks, spawn numbered copies of blueprint blocks ("add another
vehicle"), jump to any question, end the flow, or advance to the next active
block in priority order. simflow owns that state machine and nothing else:
rendering, storage and transport are injected by the host.

# Concept

An Engine is created once per form definition and is safe for concurrent
use. Each user gets a Session whose FormState is changed only through the
reducer actions of pkg/domain and is checkpointed to a ports.StateStore after
every mutation. Hosts observe what changed through domain.LifecycleHooks,
which are derived from the difference between consecutive states.

# Usage

	form, err := file.ReadForm("home.yaml")
	if err != nil {
		log.Fatal(err)
	}

	eng, err := simflow.New(form, simflow.WithStore(redisStore))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := eng.CreateSession(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	q := sess.State().ActiveQuestion
	_ = sess.SetResponse(ctx, q.QuestionID, "p1", domain.Text("o1"))

	out, _ := sess.Next(ctx)
	if out.Kind == simflow.OutcomeStopped {
		log.Println("end of flow")
	}
	log.Printf("progress: %d%%", sess.Progress())

Request-scoped hosts such as HTTP handlers use Engine.Do, which loads the
session under its lock, runs the callback and persists the result.
*/
package simflow

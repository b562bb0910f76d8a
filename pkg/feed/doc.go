// Package feed supplies the producer side of taskmill: parsing the textual
// producer input ("AB5A" style, letters for task kinds, digits for delay
// units), replaying the resulting events into the scheduler's inbound
// queue, and optionally injecting recurring tasks on cron schedules.
//
// The feeder owns the shutdown trigger: after its last event it appends
// exactly one sentinel record, which the scheduler fans out to every
// processor.
package feed

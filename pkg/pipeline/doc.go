// Package pipeline drives a scrape run batch by batch.
//
// Each batch is fetched concurrently and completes before the next one
// starts. Media runs then parse every successful page and download its
// images one at a time; retweet runs only resolve where each link
// redirects. Rows go through a checkpoint.Checkpointer, so a rerun against
// the same output resumes after the last written tweet_num.
package pipeline

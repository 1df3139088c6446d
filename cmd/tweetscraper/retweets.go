package main

import (
	"github.com/spf13/cobra"
)

// retweetsCmd represents the retweets command
var retweetsCmd = &cobra.Command{
	Use:   "retweets",
	Short: "Resolve the original author of each retweet in an input CSV",
	Long: `Follow every retweet link in the input CSV and record who retweeted
whom. Only rows with post_type retweet are processed. Links that redirect to
the suspended account page are recorded with a suspended original author.

Like scrape, the run resumes after the highest tweet_num in the output.`,
	Example: `  tweetscraper retweets --input tweets.csv --output retweets.csv`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd, true)
	},
}

func init() {
	rootCmd.AddCommand(retweetsCmd)
	addRunFlags(retweetsCmd)
}

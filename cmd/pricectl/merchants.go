package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/price-tracker/internal/dedup"
)

var checkMerchantCmd = &cobra.Command{
	Use:   "check-merchant",
	Short: "Report whether a merchant would be flagged as a duplicate",
	Long: `Run the duplicate check against the stored merchants.

Examples:
  pricectl check-merchant --name "Tata" --street "Av. Italia 4000"
  pricectl check-merchant --name "Disco Pocitos" --street "Benito Blanco 900" --city Montevideo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		name, _ := f.GetString("name")
		street, _ := f.GetString("street")
		neighborhood, _ := f.GetString("neighborhood")
		city, _ := f.GetString("city")

		verdict, err := app.Merchants.CheckDuplicates(cmd.Context(), dedup.Candidate{
			Name:         name,
			Street:       street,
			Neighborhood: neighborhood,
			City:         city,
		})
		if err != nil {
			return eris.Wrap(err, "check duplicates")
		}
		return printJSON(cmd, verdict)
	},
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List merchants grouped into chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		chains, err := app.Merchants.ListChains(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "list chains")
		}
		return printJSON(cmd, chains)
	},
}

func init() {
	f := checkMerchantCmd.Flags()
	f.String("name", "", "merchant name (required)")
	f.String("street", "", "street address")
	f.String("neighborhood", "", "neighborhood")
	f.String("city", "", "city")
	_ = checkMerchantCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(checkMerchantCmd, chainsCmd)
}

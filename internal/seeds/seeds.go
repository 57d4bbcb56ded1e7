package seeds

func SeedAll() error {
	if err := SeedZones(); err != nil {
		return err
	}
	if err := SeedAdminUser(); err != nil {
		return err
	}
	return nil
}

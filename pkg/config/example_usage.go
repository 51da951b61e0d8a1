package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     config, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     config, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "year": 2024,
//         "listing": "readings",
//         "delay": 6000,
//         "output-dir": "./wrapped",
//         "log-level": "debug",
//     }
//     config, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 4. Programmatic configuration:
//
//     config := config.DefaultConfig()
//     config.Scrape.Year = 2024
//     config.Scrape.DelayMS = 3000
//
//     if err := config.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Save configuration to file:
//
//     if err := config.Save(".ao3wrapped.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 6. Environment variables:
//
//     export AO3WRAPPED_BASE_URL="https://archiveofourown.org"
//     export AO3WRAPPED_LISTING="readings"
//     export AO3WRAPPED_DELAY_MS="6000"
//     export AO3WRAPPED_YEAR="2024"
//     export AO3WRAPPED_OUTPUT_DIR="./wrapped"
//     export AO3WRAPPED_NOTIFICATIONS_ENABLED="true"
//     export AO3WRAPPED_LOG_LEVEL="debug"
//
// 7. Using configuration in your application:
//
//     // Create an archive client with config
//     client := archive.NewClient(archive.Config{
//         BaseURL:    config.Archive.BaseURL,
//         UserAgent:  config.Archive.UserAgent,
//         Timeout:    config.Archive.Timeout(),
//         LoginPause: config.Archive.LoginPause(),
//     }, log)
//
//     // Pace listing page fetches
//     limiter := ratelimit.NewInterval(config.Scrape.Delay())

package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- DELIVERY JOB TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS delivery_job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS parts ON delivery_job TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS pickup ON delivery_job TYPE string;
    DEFINE FIELD IF NOT EXISTS dropoff ON delivery_job TYPE string;
    DEFINE FIELD IF NOT EXISTS pickup_coord ON delivery_job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS dropoff_coord ON delivery_job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS deadline_iso ON delivery_job TYPE string;
    DEFINE FIELD IF NOT EXISTS deadline_display ON delivery_job TYPE string;
    DEFINE FIELD IF NOT EXISTS distance_meters ON delivery_job TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS duration_seconds ON delivery_job TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS price_cents ON delivery_job TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS status ON delivery_job TYPE string
        ASSERT $value IN ["pending_quote", "scheduled", "picked_up", "in_transit", "delivered", "cancelled"];
    DEFINE FIELD IF NOT EXISTS session_id ON delivery_job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON delivery_job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON delivery_job TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS delivery_job_status ON delivery_job FIELDS status;
    DEFINE INDEX IF NOT EXISTS delivery_job_created ON delivery_job FIELDS created_at;
`

package sqlinline

// QWorkerClaimEmailJob moves the oldest due job to RUNNING and returns it.
// A job RUNNING for longer than $1 seconds belonged to a worker that died and
// is claimed again. Concurrent workers skip rows another worker has locked.
const QWorkerClaimEmailJob = `--sql 4ce5bef3-58a3-4238-865b-64a1bcce5098
update email_jobs j
set status = 'RUNNING',
    attempts = j.attempts + 1,
    updated_at = now()
where j.id = (
    select q.id
    from email_jobs q
    where (q.status = 'QUEUED' and q.next_attempt_at <= now())
       or (q.status = 'RUNNING' and q.updated_at < now() - make_interval(secs => $1::float8))
    order by q.next_attempt_at, q.created_at, q.id
    limit 1
    for update skip locked
)
returning j.id, j.email_campaign, j.email_template, j.sender, j.recipient_email,
          j.status, j.attempts, j.created_at, j.updated_at;
`

const QPublishEvent = `--sql 0e27239d-c442-4ead-a99f-42f9bb9481be
select pg_notify($1::text, $2::text);
`
